// Package settings normalizes camera widgets into config records and applies
// client-supplied string values back onto widgets.
//
// Kind mapping on read:
//
//	Text    value verbatim
//	Range   value as the shortest float32 decimal ("1.5", "-0.3")
//	Toggle  "true" or "false"; an indeterminate state reads as "false"
//	Radio   active choice, choices in driver order
//	Date    unix seconds as a decimal integer
//	Group   no record
//	Button  no record
//
// Writes to Group, Button and Date settings, and to read-only settings, are
// rejected with fault.Unsupported before the driver is asked to commit.
package settings
