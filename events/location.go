package events

type Location struct {
	Address string
	Lat     float64
	Lng     float64
}
