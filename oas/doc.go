// Package oas loads OpenAPI 3.x specifications and checks HTTP traffic against the
// operations they declare.
//
// A [Specification] is parsed once with the oastools parser and never modified. A
// [Processor] built over it answers the questions a router asks while compiling routes
// and serving requests:
//
//   - [Processor.LookupOperation] finds the declaration for a path template and method
//   - [Processor.ValidateOperation] reports structural problems in that declaration
//   - [Processor.DenormalizeOperation] inlines every local $ref into an [Operation]
//   - [Processor.ConformParameter], [Processor.ConformRequestBody] and
//     [Processor.ConformResponse] check live values, writing typed parameter values
//     and body defaults back into the request
//
// # Basic Usage
//
//	spec, err := oas.Load(oas.WithFilePath("openapi.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	proc, _ := oas.New(spec)
//
//	decl, err := proc.LookupOperation("/pets/{petId}", "get")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := proc.ValidateOperation(decl); err != nil {
//	    log.Fatal(err)
//	}
//	op, err := proc.DenormalizeOperation(decl)
//
// # Parameters
//
// Parameters are deserialized according to their style (simple, label, matrix, form,
// spaceDelimited, pipeDelimited, deepObject) and coerced to the scalar type their schema
// declares before validation. A parameter that is absent from the request but declares
// a default, an explicit null included, receives that default without validation.
//
// # Errors
//
// Failures are reported with the oaserrors types: [oaserrors.LoadError] while loading,
// [oaserrors.ValidationError] and [oaserrors.ReferenceError] while compiling routes, and
// [oaserrors.ConformanceError] while checking traffic.
package oas
