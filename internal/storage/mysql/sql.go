package mysql

const insertSearchSQL = `
INSERT INTO searches (id, kind, query, results, message, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// booking attempts are append-only; a retried submit gets a new id
const insertBookingSQL = `
INSERT INTO bookings (id, owner, kind, offer_id, passengers, total, currency, outcome, reference, message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const recentBookingsSQL = `
SELECT id, owner, kind, offer_id, passengers, total, currency, outcome, reference, message, created_at
FROM bookings
WHERE owner = ?
ORDER BY created_at DESC, id
LIMIT ?
`

const recentSearchesSQL = `
SELECT id, kind, query, results, message, created_at
FROM searches
WHERE kind = ?
ORDER BY created_at DESC, id
LIMIT ?
`
