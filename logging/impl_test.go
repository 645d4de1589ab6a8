package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
	z string
}

type User struct {
	Name string
}

type StructWithStruct struct {
	x int
	Y User
	z string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 5 {
		return
	}

	// JSON encoding of maps can be unpredictable because map iteration order can change between
	// runs. Parse the output into maps and assert on map equality.
	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := NewBlankLogger("impl")
	logger.AddAppender(NewWriterAppender(notStdout))

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:45:20.764Z	INFO	impl	logging/impl_test.go:131	impl infof log`)

	logger.Infow("impl logw", "key", "value")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:132	impl logw	{"key":"value"}`)

	logger.Infow("StructWithStruct", "key", "val", "StructWithStruct", StructWithStruct{1, User{"alice"}, "foo"})
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129Z	INFO	impl	logging/impl_test.go:123	StructWithStruct	{"StructWithStruct":{"Y":{"Name":"alice"}},"key":"val"}`)

	logger.Infow("BasicStruct", "implOneKey", "1val", "BasicStruct", BasicStruct{1, "alice", "foo"})
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129Z	INFO	impl	logging/impl_test.go:125	BasicStruct	{"BasicStruct":{"X":1},"implOneKey":"1val"}`)

	logger.Infow("impl logw", "key", "val", "fmt.Sprintf", fmt.Sprintf("%+v", BasicStruct{1, "a", "b"}))
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129Z	INFO	impl	logging/impl_test.go:127	impl logw	{"fmt.Sprintf":"{X:1 y:a z:b}","key":"val"}`)
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := NewBlankLogger("levels")
	logger.AddAppender(NewWriterAppender(notStdout))

	logger.SetLevel(WARN)
	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	levels	logging/impl_test.go:67	kept`)

	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}
	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"error"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, ERROR)
	out, err := json.Marshal(WARN)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"warn"`)
}

func TestSublogger(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := NewBlankLogger("dwb")
	logger.AddAppender(NewWriterAppender(notStdout))

	sub := logger.Sublogger("critics")
	sub.Info("sub log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	dwb.critics	logging/impl_test.go:67	sub log`)

	// A sublogger's level is independent of its parent's.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestUnpairedKeyAndUTC(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := NewBlankLogger("planner")
	logger.AddAppender(NewWriterAppender(notStdout))

	logger.Warnw("no valid trajectories", "critic")
	line := notStdout.String()
	test.That(t, line, test.ShouldContainSubstring, `{"critic":"unpaired log key"}`)
	stamp, _, found := strings.Cut(line, "\t")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, strings.HasSuffix(stamp, "Z"), test.ShouldBeTrue)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	planner	logging/impl_test.go:67	no valid trajectories	{"critic":"unpaired log key"}`)
}

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("critic failed to prepare", "critic", "PathDist")

	test.That(t, logs.FilterMessage("critic failed to prepare").Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.ContextMap()["critic"], test.ShouldEqual, "PathDist")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}
