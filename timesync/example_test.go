package timesync_test

import (
	"fmt"

	"github.com/joeycumines/go-rtsched/timebase"
	"github.com/joeycumines/go-rtsched/timesync"
)

func ExampleTimeSource() {
	clock := timebase.NewManualClock(1000)
	ref := timesync.NewReference(clock, 0)
	ts, err := timesync.NewTimeSource(
		timesync.WithClock(clock),
		timesync.WithSource(ref, 1.5),
	)
	if err != nil {
		panic(err)
	}
	defer ts.Close()

	ts.ForceCorrectTo(timesync.Stamp[int64](5000, 1000))
	fmt.Println(ts.Now())

	// the reference runs 1000ppm fast, and is 1us ahead
	clock.Advance(timebase.Millisecond)
	ref.Deliver(timesync.Stamp[int64](1_006_000, clock.Now()))
	fmt.Printf("%d %.6f\n", ts.Now(), ts.Factor())

	clock.Advance(timebase.Millisecond)
	fmt.Println(ts.Now() / timebase.Microsecond)

	//output:
	//5000
	//1005000 1.001001
	//2006
}
