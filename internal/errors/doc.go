// Package errors turns failures into RFC 7807 problem responses.
//
// Domain sentinels from pkg/contracts/domain are matched with errors.Is:
// range, goal, frequency and metric errors answer 400, an empty window or
// too little data answers 422, a missing dataset 404 and any other dataset
// load failure 503. Validator field errors and APIError values raised by
// handlers are rendered with their field details.
package errors
