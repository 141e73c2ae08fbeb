package domain

// Tool is a featured entry in the curated tools catalog. Detail fields are
// only populated for tools with a full write-up.
type Tool struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	CompanyName string   `json:"company_name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Image       string   `json:"image,omitempty"`
	Badges      []string `json:"badges"`

	WebsiteURL   string        `json:"website_url,omitempty"`
	CompanyURL   string        `json:"company_url,omitempty"`
	Pricing      *ToolPricing  `json:"pricing,omitempty"`
	KeyFeatures  []string      `json:"key_features,omitempty"`
	Pros         []string      `json:"pros,omitempty"`
	Cons         []string      `json:"cons,omitempty"`
	UseCases     []string      `json:"use_cases,omitempty"`
	Alternatives []ToolSummary `json:"alternatives,omitempty"`
	LastUpdated  string        `json:"last_updated,omitempty"`
}

// ToolPricing describes the free tier and paid plans of a tool.
type ToolPricing struct {
	Type             string     `json:"type"`
	Free             bool       `json:"free"`
	FreeTierFeatures []string   `json:"free_tier_features,omitempty"`
	Paid             bool       `json:"paid"`
	PaidPlans        []PaidPlan `json:"paid_plans,omitempty"`
}

// PaidPlan is one subscription tier.
type PaidPlan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

// ToolSummary references another catalog entry.
type ToolSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
}
