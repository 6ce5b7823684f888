package doctor

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gen2brain/malgo"
)

// checkMic opens the default capture device for a short probe and reports the
// peak amplitude, catching dead or permission-blocked microphones before a
// real session does.
func checkMic() (string, bool) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Sprintf("audio context: %v", err), false
	}
	defer ctx.Uninit()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = 16000

	var peak int16
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, _ uint32) {
			for i := 0; i+1 < len(data); i += 2 {
				s := int16(binary.LittleEndian.Uint16(data[i:]))
				if s < 0 {
					s = -s
				}
				if s > peak {
					peak = s
				}
			}
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Sprintf("capture init: %v", err), false
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return fmt.Sprintf("capture start: %v", err), false
	}
	time.Sleep(500 * time.Millisecond)
	dev.Stop()

	return fmt.Sprintf("peak amplitude %d/32767 over 500ms probe", peak), true
}
