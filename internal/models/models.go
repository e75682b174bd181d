package models

// Record is the Postgres mirror of one keyed ledger record, stored as the
// raw encoded blob so the read side decodes with the same codecs as the
// state machine.
type Record struct {
	tableName struct{} `sql:"records"` //nolint: unused,structcheck

	Kind  string `sql:"kind,pk"`
	Key   string `sql:"key,pk"`
	Value []byte `sql:"value,notnull"`
}

// CallRecord mirrors one entry of the historical transaction log.
type CallRecord struct {
	tableName struct{} `sql:"call_records"` //nolint: unused,structcheck

	Ordinal int64  `sql:"ordinal,pk"`
	Sender  string `sql:"sender,notnull"`
	Kind    string `sql:"kind,notnull"`
	Args    []byte `sql:"args"`
}
