package entities

// ProductID identifies a finished good or a component
type ProductID string

// LocationID identifies a plant, warehouse or customer site
type LocationID string

// NoLocation is the source reported for lines without a feasible source
const NoLocation LocationID = "none"

// Quantity represents an integer quantity value for discrete units
type Quantity int64
