// Package fixtures creates Aisle test data through the real repositories.
//
//	tdb := testdb.New(t)
//	f := fixtures.New(tdb.DB)
//	couple := f.CreateCouple(t)
//	vendor := f.CreateVendorUser(t)
//	_, room := f.CreateVenueWithRoom(t, vendor)
//	table := f.CreateTable(t, couple, room, "Table 1")
//	guest := f.CreateGuest(t, couple, "Ann")
//
// Users are created with DefaultPassword. Data lives in the test's
// namespace and is removed with it.
package fixtures
