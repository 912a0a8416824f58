package glaze

// Version of the interop engine.
const Version = "0.1.0"
