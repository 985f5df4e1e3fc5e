// Package pinterest publishes catalog items to Pinterest as product
// pins on a merchant board.
//
// Pinterest has no batch endpoint for pins, so every item is pushed
// individually; the adapter compensates with a higher parallelism
// bound than the batch-capable platforms. The board the pins land on
// is a prerequisite: a stored board ID is verified, otherwise the
// merchant's boards are searched by name and a board is created when
// none matches.
//
// Rate-limit state is read from the X-RateLimit-Limit and
// X-RateLimit-Remaining reply headers, with X-RateLimit-Reset giving
// the seconds until the window rolls over. HTTP 429 is retried with
// backoff; HTTP 401 invalidates the token and surfaces as expired
// authentication.
package pinterest
