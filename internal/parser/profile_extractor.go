package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"i-hire-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// CVEducation is one education entry extracted from a CV.
type CVEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// CVExperience is one work experience entry extracted from a CV.
type CVExperience struct {
	Company          string   `json:"company"`
	Position         string   `json:"position"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// CVProfile is the structured data extracted from freeform CV text. Fields
// the model could not find are left zero-valued.
type CVProfile struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Education      []CVEducation  `json:"education"`
	Experience     []CVExperience `json:"experience"`
	Skills         []string       `json:"skills"`
	Languages      []string       `json:"languages"`
	Certifications []string       `json:"certifications"`
}

// ProfileExtractor turns raw CV text into a structured CVProfile using an LLM.
type ProfileExtractor struct {
	llmModel model.ToolCallingChatModel
}

// NewProfileExtractor creates a CV profile extractor backed by the given model.
func NewProfileExtractor(llmModel model.ToolCallingChatModel) *ProfileExtractor {
	return &ProfileExtractor{llmModel: llmModel}
}

const profileSystemMessage = "You are a CV parser that extracts structured information from CV text. Return only valid JSON."

// Extract parses the CV text into structured profile data.
func (e *ProfileExtractor) Extract(ctx context.Context, cvText string) (*CVProfile, error) {
	if e.llmModel == nil {
		return nil, fmt.Errorf("profile extractor has no model configured")
	}
	if strings.TrimSpace(cvText) == "" {
		return nil, fmt.Errorf("cv text is empty")
	}

	messages := []*schema.Message{
		schema.SystemMessage(profileSystemMessage),
		schema.UserMessage(buildProfilePrompt(cvText)),
	}

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating profile extraction: %w", err)
	}

	profile, err := parseProfileResponse(response.Content)
	if err != nil {
		logger.Warn().Err(err).Int("response_length", len(response.Content)).Msg("failed to parse CV extraction response")
		return nil, err
	}
	return profile, nil
}

func parseProfileResponse(content string) (*CVProfile, error) {
	raw := extractJSONObject(stripCodeFences(content))
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var profile CVProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("parsing profile JSON: %w", err)
	}
	return &profile, nil
}

func buildProfilePrompt(cvText string) string {
	var sb strings.Builder
	sb.WriteString(`Act like an expert natural language processing system specialized in parsing CVs and resumes. Your task is to extract structured data from freeform CV text and return it strictly in JSON format. Do not return any explanations, notes, or additional text—only valid JSON.

Objective: Analyze a block of CV or resume text and identify the most relevant structured information fields for downstream use in HR software or recruitment systems.

Instructions:
Step 1: Carefully read and understand the entire CV text, paying attention to both explicit headings and implied patterns in the content.
Step 2: Identify and extract the following fields with high accuracy and return them using the precise JSON schema below:
- name (string): Full name of the person.
- email (string): Valid email address.
- phone (string): Valid phone number with or without country code.
- education (array of objects): Each object should include:
- degree (e.g., BSc Computer Science)
- institution (e.g., Stanford University)
- year (e.g., 2020 or a string range like "2017–2021")
- experience (array of objects): Each object should include:
- company (e.g., Microsoft)
- position (e.g., Software Engineer)
- duration (e.g., Jan 2019 – Mar 2023)
- responsibilities (array of strings): One string per responsibility; always return an array even if there's only one item.
- skills (array of strings): List technical and soft skills.
- languages (array of strings): Include only human languages mentioned.
- certifications (array of strings): Include any professional certifications or licenses.

Step 3: Ensure that the JSON is valid, syntactically correct, and represents all information found. If a section is missing, omit the field entirely rather than returning empty strings or arrays.

Step 4: Wrap your entire response strictly in JSON format and nothing else.

CV Text:
`)
	sb.WriteString(cvText)
	sb.WriteString("\n\nTake a deep breath and work on this problem step-by-step.")
	return sb.String()
}
