package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/ptest"
)

// register adds the battery to reg in the order the tests run.
func register(reg *ptest.Registry) {
	reg.Register("SomeStuff", someStuff)
	reg.Register("FailWithoutMessage", failWithoutMessage)
	reg.Register("FailWithMessage", failWithMessage)
	reg.Register("FailInNestedFunction", failInNestedFunction)

	ptest.RegisterFixtured(reg, "TestFixtureTest", fixtureTest, ptest.Fixture[*fixtureData]{
		Create:   createFixtureData,
		Teardown: freeFixtureData,
	})
	ptest.RegisterFixtured(reg, "TestFixtureTestPassInData", fixtureTestPassInData, ptest.Fixture[*fixtureData]{
		Data: &staticFixtureData,
	})
	ptest.RegisterFixtured(reg, "FileIO", fileIO, ptest.Fixture[*os.File]{
		Create:   createTestFile,
		Teardown: removeTestFile,
	})
}

// printStr asserts even though it is not a test body; the failure still
// aborts the calling test.
func printStr(t *ptest.T, s *string) {
	t.Assert(s != nil, "s != nil")
	fmt.Fprint(t.Output(), *s)
}

func someStuff(t *ptest.T) int {
	hello := "Hello world"
	printStr(t, &hello)
	printStr(t, nil)

	t.Logf("I shouldn't ever print.")
	return ptest.StatusOK
}

// The failure message is cleared by the passing assertion, so the returned
// failure is shown but not counted.
func failWithoutMessage(t *ptest.T) int {
	t.SetMessage("This string shouldn't be seen because it's cleared by the next assert.")
	t.Assert(5 == 5, "5==5")
	return ptest.StatusFail
}

func failWithMessage(t *ptest.T) int {
	t.SetMessage("This test is just built to fail.")
	return ptest.StatusFail
}

func failInNestedFunction(t *ptest.T) int {
	t.Logf("Do less")

	t.SetMessage("Could not set yes().")
	t.Assert(5 == 5, "5==5")
	yes(t)

	t.Logf("If successful, this should print.")
	return ptest.StatusOK
}

func yes(t *ptest.T) {
	five, seven := 5, 7
	t.Assert(five == seven, "5 == 7")
}

type fixtureData struct {
	r   int
	str string
}

var staticFixtureData = fixtureData{r: 42, str: "I'm on the stack!"}

func createFixtureData(t *ptest.T) *fixtureData {
	t.Logf("Hello from inside test fixture init.")
	return &fixtureData{r: 42, str: "Hello I'm set from a test fixture!"}
}

func freeFixtureData(t *ptest.T, data *fixtureData) {
	t.Logf("Destroying...")
}

func fixtureTest(t *ptest.T, data *fixtureData) int {
	t.Logf("This test should pass!")
	t.Logf("%s", data.str)
	t.Assert(data.r == 42, "data.r == 42")
	return ptest.StatusOK
}

func fixtureTestPassInData(t *ptest.T, data *fixtureData) int {
	t.Logf("%s", data.str)
	t.Assert(data.r == 42, "data.r == 42")
	return ptest.StatusOK
}

func testFilePath() string {
	return filepath.Join(os.TempDir(), "ptest-battery-testfile")
}

func createTestFile(t *ptest.T) *os.File {
	t.Logf("[Setup:] Creating testfile...")
	f, err := os.Create(testFilePath())
	if err != nil {
		t.SetMessage(err.Error())
		return nil
	}
	return f
}

func removeTestFile(t *ptest.T, f *os.File) {
	t.Logf("[Cleanup:] Removing testfile...")
	if f != nil {
		f.Close()
	}
	os.Remove(testFilePath())
}

func fileIO(t *ptest.T, f *os.File) int {
	t.Assert(f != nil, "f != nil")
	_, err := f.WriteString("This is a test")
	t.Assert(err == nil, "err == nil")
	return ptest.StatusOK
}
