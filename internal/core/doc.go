// Package core provides the business logic of the test-case manager.
//
// It sits between the transport layers (the chi server and the CLI) and
// persistence ([store.Store]), and can be used by web handlers, tools or
// tests without modification.
//
// # Service
//
// [Service] is the single entry point. It offers:
//
//   - Validated CRUD for modules, sub-modules, priorities, automation
//     statuses, users ("automated by"), tags and test cases.
//   - Background import jobs built on the importer package, with progress
//     fan-out to subscribers and a concurrency limit ([ImportLimiter]).
//   - Dashboard statistics and CSV export.
//
// Service satisfies importer.Gateway, so the import pipeline runs
// in-process against the same validation the REST API applies.
//
// # Import Jobs
//
// The flow of an import is:
//
//  1. Client calls [Service.StartImport] with the file name and contents
//  2. A slot is acquired from the limiter (or ErrTooManyImports)
//  3. The file is decoded by the tabular package and handed to the importer
//  4. Progress is broadcast to subscribers via [Service.SubscribeProgress]
//  5. [Service.ImportResult] blocks until the job is done
//
// # Error Handling
//
// Business rule violations are returned as [*Error] with a [Kind] and a
// message that clients show verbatim. Everything else is mapped to a
// user-friendly message with a support code using [MapError]:
//
//   - DB001-DB006: Database errors (duplicates, references, connections)
//   - VAL001-VAL003: Validation errors (required fields, missing columns)
//   - FILE001-FILE005: File errors (size, format, empty input)
//   - IMP001-IMP005: Import errors (busy, not found, cancelled, timeout)
package core
