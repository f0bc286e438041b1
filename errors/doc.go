/*
Package errors implements the error taxonomy shared by all petal packages.

Every error returned to a client must wrap one of the root errors registered
with this package, or an extension error registered with Register(code, desc).
Extensions pick their codes from their own range, so that a client can
distinguish error kinds by the ABCI code alone. x/docsign is a good package to
take a look at for registering extension errors.

Reuse root errors with ErrXyz.New and ErrXyz.Newf, add context with Wrap and
Wrapf and test the kind with ErrXyz.Is. Several errors can be clubbed
together with Append, and Field attaches a field name to a validation error.

The first wrap records a stack trace. Do not create errors as globals with
New, as the stack trace would point to the package initialization.

Once you have an error, fmt verbs give more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
