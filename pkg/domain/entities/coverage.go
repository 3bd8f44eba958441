package entities

// CoverageRow compares demand inside a horizon with on-hand stock for one product
type CoverageRow struct {
	ProductID      ProductID
	DemandInWindow Quantity
	OnHand         Quantity
	Gap            Quantity
	Risk           bool
}
