package statusled

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/temoto/gpio-cdev-go"
	gpio_mock "github.com/temoto/gpio-cdev-go/mock"
)

func TestLED(t *testing.T) {
	t.Parallel()
	var values []byte
	lines := new(gpio_mock.MockLines)
	lines.On("SetFunc", uint32(17)).Return(gpio.LineSetFunc(func(v byte) { values = append(values, v) }))
	lines.On("Flush").Return(nil)
	lines.On("Close").Return(nil)
	chip := new(gpio_mock.MockChip)
	chip.On("OpenLines", gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, uint32(17)).Return(lines, nil)
	chip.On("Close").Return(nil)

	led, err := New(chip, "17")
	require.NoError(t, err)
	assert.False(t, led.On())
	require.NoError(t, led.Set(true))
	assert.True(t, led.On())
	require.NoError(t, led.Set(false))
	assert.Equal(t, []byte{0, 1, 0}, values)
	require.NoError(t, led.Close())

	chip.AssertExpectations(t)
	lines.AssertNumberOfCalls(t, "Flush", 3)
}

func TestLEDFlushError(t *testing.T) {
	t.Parallel()
	lines := new(gpio_mock.MockLines)
	lines.On("SetFunc", mock.Anything).Return(gpio.LineSetFunc(func(byte) {}))
	lines.On("Flush").Return(nil).Once()
	lines.On("Flush").Return(errors.New("EIO"))
	chip := new(gpio_mock.MockChip)
	chip.On("OpenLines", gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, uint32(4)).Return(lines, nil)

	led, err := New(chip, "4")
	require.NoError(t, err)
	err = led.Set(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EIO")
	assert.False(t, led.On())
}

func TestLEDInvalidPin(t *testing.T) {
	t.Parallel()
	_, err := New(new(gpio_mock.MockChip), "PA7")
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err))
}

func TestLEDInitFlushError(t *testing.T) {
	t.Parallel()
	lines := new(gpio_mock.MockLines)
	lines.On("SetFunc", uint32(5)).Return(gpio.LineSetFunc(func(byte) {}))
	lines.On("Flush").Return(errors.New("EIO"))
	lines.On("Close").Return(nil)
	chip := new(gpio_mock.MockChip)
	chip.On("OpenLines", gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, uint32(5)).Return(lines, nil)

	led, err := New(chip, "5")
	require.Error(t, err)
	assert.Nil(t, led)
	lines.AssertCalled(t, "Close")
}

func TestChipPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultChip, ChipPath(""))
	assert.Equal(t, "/dev/gpiochip1", ChipPath("gpiochip1"))
	assert.Equal(t, "/dev/gpiochip2", ChipPath("/dev/gpiochip2"))
}
