// Package logger provides structured logging for igprofile on top of zerolog.
//
// A console writer with coloured levels is used by default; setting
// logging.format to "json" switches to plain JSON lines. When logging.file
// is set, every entry is also appended to that file as JSON.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("username", "naturelovers")
//	log.InfoWithFields("Actor run submitted", map[string]interface{}{
//	    "run_id": run.ID,
//	})
//
// Components take a Logger in their constructors. Tests pass
// NewTestLogger() to assert on captured messages, or NewNopLogger() to
// silence output.
package logger
