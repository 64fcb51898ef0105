package ui_config

type Config struct {
	// zero means back to back ticks, key rescan delay paces the loop
	TickMs int      `hcl:"tick_ms"`
	Apps   []string `hcl:"apps"`

	Brightness struct {
		Level int `hcl:"level"`
	} `hcl:"brightness"`

	Scrollers []ScrollerConfig `hcl:"scroller"`
}

type ScrollerConfig struct {
	Name    string `hcl:"name,key"`
	Text    string `hcl:"text"`
	DelayMs int    `hcl:"delay_ms"`
}

var DefaultApps = []string{"clock", "brightness"}
