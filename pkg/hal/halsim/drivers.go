package halsim

import (
	"github.com/halio-project/halio-go/pkg/adc"
	"github.com/halio-project/halio-go/pkg/dac"
	"github.com/halio-project/halio-go/pkg/gpio"
	"github.com/halio-project/halio-go/pkg/i2c"
	"github.com/halio-project/halio-go/pkg/pwm"
	"github.com/halio-project/halio-go/pkg/spi"
	"github.com/halio-project/halio-go/pkg/timer"
	"github.com/halio-project/halio-go/pkg/uart"
)

// Compile-time checks that each sim peripheral satisfies its façade's
// driver interface.
var (
	_ uart.Driver  = (*UART)(nil)
	_ spi.Driver   = (*SPI)(nil)
	_ i2c.Driver   = (*I2C)(nil)
	_ adc.Driver   = (*ADC)(nil)
	_ dac.Driver   = (*DAC)(nil)
	_ pwm.Driver   = (*PWM)(nil)
	_ timer.Driver = (*Timer)(nil)
	_ gpio.Driver  = (*GPIO)(nil)
)
