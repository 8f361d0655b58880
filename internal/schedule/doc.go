// Package schedule implements the time-triggered part of the actuation engine.
//
// # Time of day
//
// A TimeOfDay carries no date. Adding a duration wraps modulo 24 hours, so a
// window starting at 23:30 and lasting one hour stops at 00:30.
//
// # Waiting
//
// WaitUntil resolves once at the next occurrence of a time-of-day. A target
// equal to the current time-of-day resolves immediately rather than a day
// later.
//
// # Controllers
//
// A Controller alternates between waiting for the window start (then sending
// On) and waiting for the window stop (then sending Off). The stop time is
// derived from the nominal start time once, so delays in delivering On shorten
// the realised on-duration instead of shifting the schedule. Send failures are
// logged and counted; they never end the loop. A Controller stops only when
// its context is cancelled or Stop is called.
package schedule
