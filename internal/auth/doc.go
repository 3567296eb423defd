// Package auth guards the rig's command endpoints with an operator login.
//
// A rig has one operator credential: an Argon2id password hash held in
// configuration. Logging in with the matching password yields a short-lived
// HS256 JWT, which the API requires on every command (run, stop, scene,
// trigger, mode). Reads and the event stream stay open so dashboards keep
// working without a login.
//
// There is no user database and no refresh flow. When a token expires the
// operator logs in again.
package auth
