/*
Package host resolves imports against symbol tables read by goloader: the running executable
itself, other Go executables and shared objects.

Names are linker names such as "runtime.memmove" or "main.main".

# Build

goloader imports cmd/objfile, a copy of the Go SDK internals, and supports toolchains before go1.24.
The package is only compiled with the goloader build tag:

	go run ./resolve prepare
	go test -tags goloader ./host

With go1.23 the link may also need -ldflags=-checklinkname=0.
*/
package host
