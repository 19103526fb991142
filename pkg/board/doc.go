// Package board loads YAML board definitions and builds simulated
// boards from them.
//
// A board file names the peripherals of a target board and their
// façade settings. Definitions are parsed strictly (unknown fields
// are errors) and validated before use; Build wires every declared
// peripheral onto a fresh halsim bus, giving tools and tests a
// complete fake board from one file.
package board
