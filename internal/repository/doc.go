// Package repository implements SurrealDB data access for the Aisle API.
//
// There is one repository per table (or per small group of tables, e.g.
// VenueRepository owns venue and venue_room). Each takes a
// database.Database and speaks parameterised SurrealQL.
//
// # Conventions
//
//   - Record links are stored under the bare table name (owner, venue, room,
//     template, table) and renamed to *_id when decoded into model structs.
//   - Get methods return (nil, nil) for a missing record or an id from a
//     different table; callers turn that into their own not-found error.
//   - Update methods write the whole editable record; nil pointers clear
//     the field.
//   - Datetimes are sent as RFC 3339 strings and cast with <datetime>.
//   - Multi-statement writes (cascading deletes, bulk inserts) go through
//     database.AtomicBatch.
//
// # Example Usage
//
//	repo := NewGuestRepository(db)
//	guest, err := repo.GetByID(ctx, "guest:abc123")
//	if err != nil {
//	    return err
//	}
//	if guest == nil {
//	    return service.ErrGuestNotFound
//	}
package repository
