// Package testing provides a shared test suite for dict.ISource implementations.
//
// Every source is seeded with the same Fixture and must produce the same lookup results
// through a dict.Provider. Implementations call RunSourceTests from their own test files:
//
//	func Test(t *testing.T) {
//		dicttesting.RunSourceTests(t, "FileSource", func(t *testing.T, data dicttesting.Dataset) dict.ISource {
//			return NewFileSource(writePartitions(t, data))
//		})
//	}
package testing
