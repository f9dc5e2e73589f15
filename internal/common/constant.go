package common

import "time"

// UnspecifiedLocation replaces a blank or absent location when entries are
// grouped, sorted or exported. It is never persisted.
const UnspecifiedLocation = "Unspecified"

// DefaultResetInterval is the length of the rolling allocation window.
const DefaultResetInterval = 168 * time.Hour
