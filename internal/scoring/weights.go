package scoring

import "i-hire-go/internal/constants"

// baseWeights are the universal per-label weights. Labels absent from the
// table weigh 1.0.
var baseWeights = map[string]float64{
	"Relevance to Question":    1.5,
	"Technical Accuracy":       1.5,
	"Clarity of Expression":    1.2,
	"Answer Structure":         1.2,
	"Depth of Knowledge":       1.3,
	"Practical Application":    1.4,
	"Problem-Solving Approach": 1.3,
	"Communication Skills":     1.1,
	"Confidence Level":         1.0,
	"Answer Completeness":      1.2,

	"Learning Ability":      1.1,
	"Problem Complexity":    1.2,
	"Communication Style":   1.3,
	"Professional Maturity": 1.2,
}

// typeWeights override baseWeights for the labels a given interview type
// cares most about.
var typeWeights = map[string]map[string]float64{
	constants.InterviewTypeTechnical: {
		"Technical Accuracy":       2.0,
		"Problem-Solving Approach": 1.8,
		"Depth of Knowledge":       1.7,
		"Practical Application":    1.6,
	},
	constants.InterviewTypeBehavioral: {
		"Communication Skills": 1.8,
		"Leadership":           1.6,
		"Team Dynamics":        1.5,
		"Cultural Fit":         1.4,
		"Adaptability":         1.3,
		"Stress Management":    1.2,
	},
	constants.InterviewTypeLeadership: {
		"Leadership":            2.0,
		"Team Dynamics":         1.8,
		"Innovation":            1.6,
		"Impact":                1.7,
		"Professional Maturity": 1.5,
	},
}

// Weight returns the weight of a label for the given interview type.
func Weight(label, interviewType string) float64 {
	if overrides, ok := typeWeights[interviewType]; ok {
		if w, ok := overrides[label]; ok {
			return w
		}
	}
	if w, ok := baseWeights[label]; ok {
		return w
	}
	return 1.0
}

// labelTemplates name the ten labels requested per interview type.
var labelTemplates = map[string][]string{
	constants.InterviewTypeTechnical: {
		"Technical Accuracy",
		"Problem-Solving Approach",
		"Depth of Knowledge",
		"Practical Application",
		"Relevance to Question",
		"Answer Structure",
		"Clarity of Expression",
		"Communication Skills",
		"Confidence Level",
		"Answer Completeness",
	},
	constants.InterviewTypeBehavioral: {
		"Communication Skills",
		"Leadership",
		"Team Dynamics",
		"Cultural Fit",
		"Adaptability",
		"Stress Management",
		"Problem-Solving Approach",
		"Practical Application",
		"Relevance to Question",
		"Answer Structure",
	},
	constants.InterviewTypeLeadership: {
		"Leadership",
		"Team Dynamics",
		"Innovation",
		"Impact",
		"Professional Maturity",
		"Communication Skills",
		"Problem-Solving Approach",
		"Adaptability",
		"Strategic Thinking",
		"Influence",
	},
	constants.InterviewTypeGeneral: {
		"Relevance to Question",
		"Communication Skills",
		"Answer Structure",
		"Clarity of Expression",
		"Confidence Level",
		"Answer Completeness",
		"Professional Maturity",
		"Learning Ability",
		"Cultural Fit",
		"Adaptability",
	},
}

// LabelTemplate returns the label list for an interview type, defaulting to
// the general template for unknown types.
func LabelTemplate(interviewType string) []string {
	if tpl, ok := labelTemplates[interviewType]; ok {
		return tpl
	}
	return labelTemplates[constants.InterviewTypeGeneral]
}

// labelDescriptions are the one-line explanations embedded in the
// evaluation prompt.
var labelDescriptions = map[string]string{
	"Relevance to Question":    "How well the answer addresses the specific question asked",
	"Technical Accuracy":       "Correctness of technical concepts, facts, or methodologies mentioned",
	"Clarity of Expression":    "How clearly and understandably the candidate communicates their thoughts",
	"Answer Structure":         "Logical organization and flow of the response",
	"Depth of Knowledge":       "Level of expertise and understanding demonstrated",
	"Practical Application":    "How well the candidate can apply concepts to real-world scenarios",
	"Problem-Solving Approach": "Methodology and reasoning used to address challenges",
	"Communication Skills":     "Effectiveness of verbal communication and articulation",
	"Confidence Level":         "Self-assurance and conviction in the response",
	"Answer Completeness":      "How thoroughly the question was addressed",
	"Leadership":               "Demonstrated leadership qualities and capabilities",
	"Team Dynamics":            "Understanding and effectiveness in team environments",
	"Innovation":               "Creativity and innovative thinking demonstrated",
	"Impact":                   "Measurable impact and results achieved",
	"Adaptability":             "Flexibility and ability to handle change",
	"Cultural Fit":             "Alignment with organizational values and culture",
	"Stress Management":        "Ability to perform under pressure",
	"Learning Ability":         "Capacity to acquire new knowledge and skills",
	"Professional Maturity":    "Professional judgment and decision-making",
	"Strategic Thinking":       "Long-term planning and strategic vision",
}

// LabelDescription explains what a label measures.
func LabelDescription(label string) string {
	if d, ok := labelDescriptions[label]; ok {
		return d
	}
	return "Evaluation of this specific aspect"
}
