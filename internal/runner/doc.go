// Package runner answers one prompt per call: it records the prompt in the
// session's context strategy, asks the strategy which turns to send, fits them
// into the token budget and calls the Anthropic Messages API.
//
// Flow:
//
//	AddTurn(user) -> Context(query=prompt) -> Fit(budget) -> Messages.New -> AddTurn(model)
//
// The reply is added without a parent so tree strategies chain it under the
// prompt it answers.
package runner
