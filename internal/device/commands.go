package device

// CommandName identifies one vendor operation.
type CommandName string

const (
	BrightnessHigh   CommandName = "brightness-high"
	BrightnessLow    CommandName = "brightness-low"
	GestureEnable    CommandName = "gesture-enable"
	GestureDisable   CommandName = "gesture-disable"
	FlexPuffEnable   CommandName = "flexpuff-enable"
	FlexPuffDisable  CommandName = "flexpuff-disable"
	AutoStartEnable  CommandName = "autostart-enable"
	AutoStartDisable CommandName = "autostart-disable"
)

// Frame is one payload written as a single transport write.
type Frame []byte

// Command is an ordered list of frames. The device treats the whole list as
// one transaction, so frames are written strictly in order.
type Command []Frame

func (c Command) clone() Command {
	out := make(Command, len(c))
	for i, f := range c {
		out[i] = append(Frame(nil), f...)
	}
	return out
}

// Vendor payloads captured from the official app. They are opaque constants
// including their trailing check byte.
var ilumaCommands = map[CommandName]Command{
	BrightnessHigh: {
		{0x00, 0xc0, 0x46, 0x23, 0x64, 0x00, 0x00, 0x00, 0x4f},
	},
	BrightnessLow: {
		{0x00, 0x08, 0x84, 0x24, 0x1e, 0x00, 0x00, 0x00, 0x00},
	},
	GestureEnable: {
		{0x00, 0xc9, 0x48, 0x05, 0x3c, 0x05, 0x01, 0x00, 0x00, 0x01, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0xc0},
		{0x00, 0xc9, 0x04, 0x05, 0x05, 0x01, 0x00, 0x00, 0x6c},
		{0x00, 0xc9, 0x44, 0x05, 0x00, 0xff, 0xff, 0x00, 0xc3},
	},
	GestureDisable: {
		{0x00, 0xc9, 0x48, 0x05, 0x2f, 0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0xeb},
		{0x00, 0xc9, 0x44, 0x05, 0x00, 0xff, 0xff, 0x00, 0xc3},
		{0x00, 0xc9, 0x04, 0x05, 0x05, 0x01, 0x00, 0x00, 0x6c},
	},
	FlexPuffEnable: {
		{0x00, 0xd2, 0x45, 0x22, 0x03, 0x01, 0x00, 0x00, 0x0a},
	},
	FlexPuffDisable: {
		{0x00, 0xd2, 0x45, 0x22, 0x03, 0x00, 0x00, 0x00, 0x0a},
	},
	AutoStartEnable: {
		{0x00, 0xc9, 0x47, 0x24, 0x01, 0x01, 0x00, 0x00, 0x3f},
	},
	AutoStartDisable: {
		{0x00, 0xc9, 0x47, 0x24, 0x01, 0x00, 0x00, 0x00, 0x54},
	},
}

var commandTables = map[Family]map[CommandName]Command{
	FamilyBase:  {},
	FamilyIluma: ilumaCommands,
}
