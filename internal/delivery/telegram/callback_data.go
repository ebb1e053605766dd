package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionAnswer = "ans"
	actionTest   = "test"
)

// Test sub-actions.
const (
	testStart   = "start"
	testRestart = "restart"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildAnswerCallback builds callback data for picking an option of a question.
func buildAnswerCallback(questionID, optionIndex int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{strconv.Itoa(questionID), strconv.Itoa(optionIndex)},
	}.encode()
}

// buildTestCallback builds callback data for starting or restarting a test.
func buildTestCallback(sub string) string {
	return callbackData{
		Action: actionTest,
		Params: []string{sub},
	}.encode()
}

// parseAnswerParams extracts question id and option index from an "ans"
// callback, reporting false for malformed data.
func parseAnswerParams(params []string) (questionID, optionIndex int, ok bool) {
	if len(params) != 2 {
		return 0, 0, false
	}

	questionID, err := strconv.Atoi(params[0])
	if err != nil {
		return 0, 0, false
	}
	optionIndex, err = strconv.Atoi(params[1])
	if err != nil {
		return 0, 0, false
	}

	return questionID, optionIndex, true
}
