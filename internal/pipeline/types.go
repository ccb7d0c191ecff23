package pipeline

// JobRequirements is the JSON contract the model is asked to fulfil when
// analyzing a job posting. Missing fields decode to nil slices and are
// treated as empty downstream.
type JobRequirements struct {
	TechnicalRequirements    []string `json:"technical_requirements"`
	ProfessionalRequirements []string `json:"professional_requirements"`
	SoftSkills               []string `json:"soft_skills"`
	IndustryKnowledge        []string `json:"industry_knowledge"`
}

// SkillMatchResult is the JSON contract for the skill matching stage.
type SkillMatchResult struct {
	MatchedSkills       []string `json:"matched_skills"`
	MissingSkills       []string `json:"missing_skills"`
	RelevantExperiences []string `json:"relevant_experiences"`
}

// AnalysisResult is the final aggregate of a generation run.
type AnalysisResult struct {
	Requirements     []string `json:"requirements"`
	MatchedSkills    []string `json:"matchedSkills"`
	SuggestedChanges []string `json:"suggestedChanges"`
	FinalApplication string   `json:"finalApplication"`
}
