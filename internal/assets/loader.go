package assets

// TemplateExt is the extension of mail template files.
const TemplateExt = ".md"

// DefaultTemplateName is the name of the built-in participation email.
const DefaultTemplateName = "participation"

// TemplateLoader defines the contract for loading mail templates.
type TemplateLoader interface {
	// LoadTemplate loads a template by name (without .md extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
