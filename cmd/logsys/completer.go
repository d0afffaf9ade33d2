package main

import (
	"strings"

	prompt "github.com/joeycumines/go-prompt"
	pstrings "github.com/joeycumines/go-prompt/strings"
)

var commandSuggestions = []prompt.Suggest{
	{Text: "set", Description: "set a logger's level"},
	{Text: "lower", Description: "lower a logger's level"},
	{Text: "raise", Description: "raise a logger's level"},
	{Text: "list", Description: "list registered loggers"},
	{Text: "storeLogConf", Description: "save levels (binary)"},
	{Text: "loadLogConf", Description: "load levels (binary)"},
	{Text: "storeLogConfTxt", Description: "save levels (text)"},
	{Text: "loadLogConfTxt", Description: "load levels (text)"},
	{Text: "LogHistory", Description: "print recorded messages"},
	{Text: "help", Description: "show usage"},
	{Text: "exit", Description: "leave the prompt"},
}

func completer(in prompt.Document) ([]prompt.Suggest, pstrings.RuneNumber, pstrings.RuneNumber) {
	endIndex := in.CurrentRuneIndex()
	w := in.GetWordBeforeCursor()
	startIndex := endIndex - pstrings.RuneCountInString(w)
	return prompt.FilterHasPrefix(commandSuggestions, w, true), startIndex, endIndex
}

// exitChecker lets the user leave the prompt with a bare "exit" or "quit";
// dispatch treats both words as no-ops.
func exitChecker(in string, breakline bool) bool {
	if !breakline {
		return false
	}
	word := strings.TrimSpace(in)
	return strings.EqualFold(word, "exit") || strings.EqualFold(word, "quit")
}
