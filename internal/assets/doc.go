// Package assets provides the Markdown templates used for certificate emails.
// Templates can be loaded from embedded files or custom filesystem paths.
//
// # Loader Architecture
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in templates)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// A template reference is either a bare name ("participation"), resolved
// against the embedded set, or a path to a Markdown file ("mail/thanks.md"),
// whose directory becomes the custom base path.
//
// # Template Contents
//
// Templates are text/template sources producing Markdown. They receive the
// participant name, the event and the issue date as .Name, .Event and .Date.
//
// # Security
//
// Template names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
