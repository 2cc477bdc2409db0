package normalize

// flags accumulates constraint signals for one column. Setters only ever
// raise a flag, so scan order cannot weaken a column.
type flags struct {
	autoIncrement bool
	notNull       bool
	unique        bool
	primaryKey    bool
}

func (f *flags) setAutoIncrement() { f.autoIncrement = true }

func (f *flags) setNotNull() { f.notNull = true }

func (f *flags) setUnique() { f.unique = true }

func (f *flags) setPrimaryKey() {
	f.primaryKey = true
	f.notNull = true
	f.unique = true
}

// setSerial applies the SERIAL implication: auto-increment and NOT NULL.
func (f *flags) setSerial() {
	f.autoIncrement = true
	f.notNull = true
}
