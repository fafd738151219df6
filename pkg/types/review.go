// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Recommendation is the verdict level assigned to a paper.
type Recommendation string

const (
	RecommendHighly   Recommendation = "Highly Recommended"
	RecommendWorth    Recommendation = "Worth Reading"
	RecommendCaution  Recommendation = "Proceed with Caution"
	RecommendIgnore   Recommendation = "Should be Ignored"
	RecommendCritical Recommendation = "Critically Flawed"
)

// Promotable reports whether the recommendation warrants social content.
func (r Recommendation) Promotable() bool {
	return r == RecommendHighly || r == RecommendWorth
}

// Metadata is the bibliographic summary produced by the metadata stage.
type Metadata struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Reproducibility scores how easily the work could be repeated (1-10).
type Reproducibility struct {
	Score         int    `json:"score" yaml:"score"`
	Justification string `json:"justification" yaml:"justification"`
}

// MethodologyAnalysis is the output of the methodology stage.
type MethodologyAnalysis struct {
	Strengths       []string        `json:"strengths" yaml:"strengths"`
	Weaknesses      []string        `json:"weaknesses" yaml:"weaknesses"`
	Reproducibility Reproducibility `json:"reproducibility" yaml:"reproducibility"`
}

// Novelty rates one claimed contribution.
type Novelty struct {
	Contribution      string `json:"contribution" yaml:"contribution"`
	NoveltyScore      int    `json:"novelty_score" yaml:"novelty_score"`
	SignificanceScore int    `json:"significance_score" yaml:"significance_score"`
	Justification     string `json:"justification" yaml:"justification"`
}

// ContributionAnalysis is the output of the contribution stage.
type ContributionAnalysis struct {
	Claimed []string  `json:"claimed" yaml:"claimed"`
	Novelty []Novelty `json:"novelty" yaml:"novelty"`
}

// Comparison places the paper against the related work that was found.
type Comparison struct {
	Context         string `json:"context" yaml:"context"`
	Differentiation string `json:"differentiation" yaml:"differentiation"`
	Standing        string `json:"standing" yaml:"standing"`
}

// LiteratureReview is the output of the literature stage. Comparison is nil
// when there was nothing to compare against.
type LiteratureReview struct {
	Queries    []string      `json:"queries" yaml:"queries"`
	Literature LiteratureSet `json:"literature" yaml:"literature"`
	Comparison *Comparison   `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// ImpactScore is an assessment on a 1-10 scale with supporting detail.
type ImpactScore struct {
	Score     int      `json:"score" yaml:"score"`
	Reasoning string   `json:"reasoning" yaml:"reasoning"`
	Areas     []string `json:"areas" yaml:"areas"`
}

// ImpactAssessment is the output of the impact stage.
type ImpactAssessment struct {
	Field    ImpactScore `json:"field" yaml:"field"`
	Societal ImpactScore `json:"societal" yaml:"societal"`
}

// Verdict is the output of the verdict stage.
type Verdict struct {
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
	Justification  string         `json:"justification" yaml:"justification"`
	WorthReading   bool           `json:"worth_reading" yaml:"worth_reading"`
	KeyTakeaways   []string       `json:"key_takeaways" yaml:"key_takeaways"`
}

// SocialContent is the output of the social stage. When Generated is false,
// Reason explains why nothing was drafted.
type SocialContent struct {
	Generated     bool     `json:"generated" yaml:"generated"`
	Reason        string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	TwitterThread []string `json:"twitter_thread,omitempty" yaml:"twitter_thread,omitempty"`
	LinkedInPost  string   `json:"linkedin_post,omitempty" yaml:"linkedin_post,omitempty"`
}
