// Package matching selects the registration key that best matches a request.
//
// Selection runs in three passes over the candidate keys of a namespace:
//
//   - Exact pass: a key whose host and path equal the request's (host compared
//     case-insensitively) and whose query constraint is satisfied wins outright.
//   - Wildcard pass: keys whose query constraint is satisfied and whose host and
//     path glob patterns match the request survive.
//   - Specificity ranking: survivors are ranked by Score, fewer wildcards first
//     and then more literal characters. Ties keep candidate order.
//
// Query constraints are satisfied when the key has none, when the request
// query equals the constraint (QueryExact), or when every constrained pair is
// present in the request (QueryContains).
//
// When nothing matches, CollectNearMisses explains which keys came closest.
//
// Key types:
//
//   - Matcher: runs selection using a glob.Cache for compiled patterns
//   - Score: the (wildcards, literals) specificity of a key
//   - NearMiss: a per-field breakdown of a key that did not match
package matching
