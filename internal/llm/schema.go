package llm

import "github.com/google/generative-ai-go/genai"

// blueprintResponseSchema constrains model output to the blueprint payload
// shape. Only overview is required; the plan sections are optional arrays.
func blueprintResponseSchema() *genai.Schema {
	stringArray := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	return &genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"overview"},
		Properties: map[string]*genai.Schema{
			"overview": {
				Type:     genai.TypeObject,
				Required: []string{"summary"},
				Properties: map[string]*genai.Schema{
					"summary":  {Type: genai.TypeString, Description: "One-paragraph summary of the plan"},
					"mistakes": stringArray,
					"guidance": stringArray,
				},
			},
			"sequential_steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"title"},
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"timeframe":   {Type: genai.TypeString},
					},
				},
			},
			"daily_habits": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"id", "title"},
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"timeframe":   {Type: genai.TypeString},
					},
				},
			},
			"trigger_actions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"trigger", "action"},
					Properties: map[string]*genai.Schema{
						"id":      {Type: genai.TypeString},
						"trigger": {Type: genai.TypeString},
						"action":  {Type: genai.TypeString},
					},
				},
			},
			"decision_checklist": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"question"},
					Properties: map[string]*genai.Schema{
						"id":       {Type: genai.TypeString},
						"question": {Type: genai.TypeString},
						"context":  {Type: genai.TypeString},
					},
				},
			},
			"resources": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"title"},
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString},
						"url":   {Type: genai.TypeString},
						"type":  {Type: genai.TypeString},
					},
				},
			},
		},
	}
}
