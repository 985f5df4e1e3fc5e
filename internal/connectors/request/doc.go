// Package request implements the shared request core used by every
// platform connector: rate-limit tracking, exponential backoff and the
// retrying executor.
//
// The three platform connectors deliberately do not carry their own
// retry or throttling logic. Each one constructs an [Executor] with a
// platform-tuned [Tracker] and [BackoffPolicy], and wraps every API
// call in a [Call] that knows how to send one attempt, how to read the
// platform's usage signals, and how to classify the platform's error
// codes. Everything else — pacing, throttle waits, retry ceilings,
// jittered backoff, cancellation — is handled here, once.
//
// # Error Classification
//
// The executor distinguishes three failure classes:
//
//   - Transient: network errors, 5xx, and rate-limit rejections.
//     Retried up to the attempt ceiling, then surfaced wrapped in
//     [TransientError].
//   - Auth expired: surfaced immediately as domain.ErrAuthExpired with
//     zero retries; retrying with the same token cannot succeed.
//   - Permanent: any other 4xx. Surfaced immediately wrapped in
//     [PermanentError]; these are malformed requests or business-rule
//     rejections and must not be retried.
//
// # Rate Limiting
//
// The tracker combines two strategies, mirroring how mature API
// clients behave:
//
//  1. Proactive pacing: a token bucket enforces a fixed inter-request
//     rate even when quota is plentiful, so the engine never bursts.
//  2. Reactive tracking: usage signals from live responses update a
//     consumed/ceiling estimate. Above the high-water mark the tracker
//     asks callers to wait, capped to avoid multi-hour stalls from a
//     single bogus reset timestamp.
package request
