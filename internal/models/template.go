package models

// TemplateTag classifies which canned recommendation text is used.
type TemplateTag string

const (
	TemplateUrgent           TemplateTag = "urgent"
	TemplateContraindication TemplateTag = "contraindication"
	TemplateCochlearImplant  TemplateTag = "cochlear_implant"
	TemplateENTReferral      TemplateTag = "ent_referral"
	TemplateNormal           TemplateTag = "normal"
)

// RecommendationTemplate holds the canned clinical text for one template tag.
// Templates are supplied externally and read-only to the core.
type RecommendationTemplate struct {
	Recommendation string `yaml:"recommendation"`
	NextSteps      string `yaml:"next_steps"`
	KeyFinding     string `yaml:"key_finding"`
}
