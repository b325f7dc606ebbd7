package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// DefaultADS1015Address is the ADS1015 address with ADDR tied to ground.
const DefaultADS1015Address = 0x48

// FullScale is the input voltage mapped to the top of the 12-bit range.
// It plays the role of the analog front end's attenuation setting and is a
// fixed calibration constant.
const FullScale = 4096 * physic.MilliVolt

const adcSampleRate = 1600 * physic.Hertz

var singleEnded = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADS1015Channel reads one single-ended input of an ADS1015.
type ADS1015Channel struct {
	pin ads1x15.PinADC
}

// NewADS1015Channel opens input channel (0–3) of the ADS1015 at addr.
func NewADS1015Channel(bus i2c.Bus, addr uint16, channel int) (*ADS1015Channel, error) {
	if channel < 0 || channel >= len(singleEnded) {
		return nil, fmt.Errorf("ads1015: invalid channel %d", channel)
	}
	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	dev, err := ads1x15.NewADS1015(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("open ads1015 at 0x%02x: %w", addr, err)
	}
	pin, err := dev.PinForChannel(singleEnded[channel], FullScale, adcSampleRate, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1015 channel %d: %w", channel, err)
	}
	return &ADS1015Channel{pin: pin}, nil
}

// ReadRaw takes one conversion and returns it as a 12-bit count.
func (a *ADS1015Channel) ReadRaw() (int, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1015 read: %w", err)
	}
	return voltsToCount(s.V), nil
}

// Close halts the channel.
func (a *ADS1015Channel) Close() error {
	return a.pin.Halt()
}

func voltsToCount(v physic.ElectricPotential) int {
	count := int(int64(v) * logic.ADCResolution / int64(FullScale))
	if count < 0 {
		return 0
	}
	if count > logic.ADCResolution-1 {
		return logic.ADCResolution - 1
	}
	return count
}
