// Package shared groups helpers used by more than one package of the event
// ETL job that do not belong to any single stage.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that captures records for assertions
//   - Event log and geography table fixtures written to a temporary directory
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    dir := t.TempDir()
//	    testutil.WriteEventLog(t, dir, testutil.EventLine("2021-01-01", "10:00:00", "u1", "http://a.test", "8.8.8.8", testutil.ChromeOnWindows))
//	    // ...
//	}
//
// Nothing in this package may import a stage package (extract, transform,
// report) so that every stage can use it from tests.
package shared
