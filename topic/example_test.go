package topic_test

import (
	"fmt"

	"github.com/joeycumines/go-rtsched/topic"
)

type altitude struct {
	topic.Subscriber[float64]
}

func (x *altitude) Receive(metres float64, _ *topic.Topic[float64]) {
	fmt.Printf("altitude: %.1fm\n", metres)
}

func ExampleTopic() {
	var barometer topic.Topic[float64]

	a := new(altitude)
	a.Init(a)
	a.Subscribe(&barometer)

	latest := topic.NewLatch(&barometer)

	barometer.Publish(120.5)
	barometer.Publish(121)

	fmt.Println(latest.IsNew(), latest.Item(), latest.IsNew())
	//output:
	//altitude: 120.5m
	//altitude: 121.0m
	//true 121 false
}
