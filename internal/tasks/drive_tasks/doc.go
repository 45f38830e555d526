// Package drive_tasks provides workflow tasks for Google Drive operations.
//
// The tasks cover file upload, download, export, listing, metadata lookup,
// deletion and folder creation. Downloaded content is inlined into execution
// variables up to a fixed size cap.
package drive_tasks
