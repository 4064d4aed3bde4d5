package criteria

// Factory constructs criteria and conditions. Models take a Factory so tests can substitute one.
type Factory interface {
	Item(column string, value any, op Operator) (*Item, error)
	Criteria() *Criteria
}

// DefaultFactory is the production Factory.
type DefaultFactory struct{}

// NewFactory returns the production Factory.
func NewFactory() Factory {
	return DefaultFactory{}
}

// Item builds a condition, see NewItem.
func (DefaultFactory) Item(column string, value any, op Operator) (*Item, error) {
	return NewItem(column, value, op)
}

// Criteria returns an empty Criteria.
func (DefaultFactory) Criteria() *Criteria {
	return New()
}
