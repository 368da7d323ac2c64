// Package fizzbuzz implements the generalized FizzBuzz sequence engine.
//
// A [RuleSet] is an ordered list of (divisor, token) pairs. For each input
// integer, [Evaluate] concatenates the tokens of every rule whose divisor
// evenly divides it, in rule order, and falls back to the integer's decimal
// string when nothing matches. [ProcessRange], [Range] and [ProcessNumbers]
// drive Evaluate over an inclusive range or an explicit list.
//
// # Rule semantics
//
//   - A divisor of 0 is inert: it is skipped and never evaluated.
//   - Negative inputs and negative divisors are supported; only a zero
//     remainder matters, never its sign.
//   - A nil or empty RuleSet passed to a driver is replaced by
//     [DefaultRules], the classic {3:Fizz, 5:Buzz} pair.
//
// # Remote rules
//
// A [TokenSource] supplies rules fetched from an external service. The
// [RemoteProcessor] fetches once, falls back to the default rules when the
// source returned nothing, and then delegates to the synchronous drivers.
// Sources report partial failures through [FetchResult] rather than
// failing the whole fetch.
package fizzbuzz
