package notifier

import (
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/confirmation.html.tmpl"))
	textTemplate = texttemplate.Must(texttemplate.New("confirmation.txt.tmpl").
			Funcs(texttemplate.FuncMap{"inc": func(i int) int { return i + 1 }}).
			ParseFS(templateFS, "templates/confirmation.txt.tmpl"))
)

// Question пункт анкеты перед консультацией
type Question struct {
	Text    string
	Details []string
}

// confirmationData данные шаблона подтверждения
type confirmationData struct {
	Name      string
	When      string
	Service   string
	Questions []Question
	Agenda    []string
}

// Questionnaire анкета, которую лид заполняет перед консультацией
var Questionnaire = []Question{
	{Text: "Are you ready to design your new home?"},
	{Text: "Number of vehicle parking spaces: ____"},
	{Text: "Type of space (under roof garage, detached covered, uncovered): ____________"},
	{Text: "Will there be outdoor living space(s)? _______"},
	{Text: "With outdoor kitchen area? _______"},
	{Text: "Number of bedrooms range: ______"},
	{Text: "Number of bathrooms: ______"},
	{Text: "Number of Living Areas: _____"},
	{Text: "Number of levels? ________"},
	{Text: "What is the desired completion date for your new home? ________"},
	{Text: "Are you aware of the permitting requirements for the building (HOA, sanitary sewer, building codes)? ________"},
	{Text: "Do you have a survey of the lot that you are building on? ________"},
	{Text: "Do you have a surface topography of the lot that you are building on? ________"},
	{Text: "Do you have inspirational photos, drawings, articles, online sources etc. that will help with the creation of your home's design? _________"},
	{Text: "Has a general contractor been selected? ________"},
	{
		Text: "Has general consideration been given to the finish details of the home?",
		Details: []string{
			"Exterior finish: __________",
			"Roof type: ___________",
			"Countertop materials: ____________",
			"Flooring materials: __________",
		},
	},
	{Text: "What space is the most important to you? __________"},
	{Text: "Are there any challenges or concerns that you would like to address? ________"},
	{Text: "Once this worksheet has satisfactorily been completed are you ready to move to the design phase assuming that the terms are agreeable? ______"},
}

var agenda = []string{
	"Review your answers to these questions",
	"Discuss your vision for your new home",
	"Explore design options and possibilities",
	"Address any concerns or questions you may have",
}
