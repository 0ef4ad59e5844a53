// Package module defines the collaborator contracts the build pipeline uses to
// turn a schema specifier into a value: resolving the specifier to a Source,
// loading the Document behind it, and evaluating that document into a Module
// whose default export becomes the inlined schema.
//
// Values produced by evaluators keep object key order (see Object) so the
// serialized schema follows the order the author wrote.
package module
