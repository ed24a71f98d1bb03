package option

type LogOptions struct {
	Disabled bool   `config:"disabled"`
	File     string `config:"file"`
	Debug    bool   `config:"debug"`
	Color    *bool  `config:"color"`
}
