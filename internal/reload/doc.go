// Package reload implements best-effort hot reloading of plugin packages
// hosted in the same process.
//
// A reload replays the host's own plugin loading sequence for one package
// without restarting the process: the package's modules are torn down via
// the host's unload hook, removed from the process-wide module cache in
// deepest-first order, then reimported and re-registered in deterministic
// order. Partial results are accepted; a package left half reloaded is
// reported through the log sink, never through a returned error.
//
// The package is host-agnostic. All interaction with the embedding runtime
// goes through small capability interfaces (Registry, Lifecycle, Importer,
// Source) so tests can substitute in-memory fakes and so the core never
// mutates real process state directly. See the host package for the Lua
// runtime implementation.
//
// Public entry points never return errors. Every host hook, import, and
// filesystem access is individually fallible and commonly fails in
// practice; failures are logged and the surrounding operation continues.
// Callers learn about the outcome through a boolean success flag or not
// at all.
//
// Components:
//
//   - Scanner gathers the module sets for a package (live cache union
//     filesystem scan) and classifies top-level plugin modules.
//   - Unloader tears a package down: unload hook, deepest-first cache
//     removal, import path cache invalidation.
//   - Loader reimports the gathered modules and re-registers top-level
//     plugin modules with the host, falling back to the host's
//     named-reload path when the registration hook fails.
//   - Reloader sequences the above for one package and iterates a
//     configured list of packages, with a brute-force file-by-file
//     fallback for packages the primary sequence cannot reload.
//
// Reloads are synchronous and single-threaded; the host serializes
// invocations, and no two reloads of the same package run concurrently.
package reload
