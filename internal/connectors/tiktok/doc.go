// Package tiktok publishes catalog items to a TikTok Shop.
//
// The Shop API differs from the other platforms in two ways. First,
// most failures arrive as a business code inside an HTTP 200 envelope
// rather than as an HTTP status, so classification reads the body on
// every reply. Second, pushes target a shop the seller authorised
// during onboarding: the prerequisite step resolves the stored shop ID
// against the authorised shop list and refuses to guess when the
// seller has several shops and none is configured.
//
// Items go up through the batch product endpoint in chunks of twenty,
// with per-item failures reported inside the envelope.
package tiktok
