package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/galdor/go-ejson"
	"github.com/galdor/go-influx/pkg/cfg"
	"github.com/galdor/go-influx/pkg/influx"
	"github.com/galdor/go-influx/pkg/shttp"
	"github.com/galdor/go-log"
	"github.com/galdor/go-program"
)

type Cfg struct {
	HTTPClient shttp.ClientCfg  `json:"http_client"`
	Influx     influx.ClientCfg `json:"influx"`
}

func (c *Cfg) ValidateJSON(v *ejson.Validator) {
	v.CheckObject("http_client", &c.HTTPClient)
	v.CheckObject("influx", &c.Influx)
}

func main() {
	p := program.NewProgram("influx-write",
		"write a data point to an InfluxDB bucket")

	p.AddOption("c", "cfg-file", "path", "",
		"the path of the configuration file")
	p.AddOption("m", "measurement", "name", "",
		"the measurement of the point")
	p.AddOption("t", "tags", "name=value,...", "",
		"the tags of the point")
	p.AddOption("i", "int-fields", "name=value,...", "",
		"integer fields")
	p.AddOption("f", "float-fields", "name=value,...", "",
		"floating point fields")
	p.AddOption("s", "string-fields", "name=value,...", "",
		"string fields")
	p.AddOption("b", "bool-fields", "name=value,...", "",
		"boolean fields")
	p.AddOption("", "timestamp", "value", "",
		"the timestamp of the point in the configured precision")
	p.AddFlag("n", "dry-run",
		"print the protocol line instead of sending it")

	p.ParseCommandLine()

	var c Cfg

	if p.IsOptionSet("cfg-file") {
		cfgPath := p.OptionValue("cfg-file")

		p.Info("loading configuration from %q", cfgPath)

		if err := cfg.Load(cfgPath, nil, &c); err != nil {
			p.Fatal("cannot load configuration: %v", err)
		}
	}

	point, err := buildPoint(p.OptionValue("measurement"), optionValues(p))
	if err != nil {
		p.Fatal("invalid point: %v", err)
	}

	if p.IsOptionSet("timestamp") {
		point.Timestamp(p.OptionValue("timestamp"))
	}

	if p.IsOptionSet("dry-run") {
		settings := influx.PointSettings{DefaultTags: c.Influx.Tags}

		line, ok := point.LineProtocol(&settings)
		if !ok {
			p.Fatal("%v", point)
		}

		fmt.Println(line)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		p.Fatal("cannot obtain hostname: %v", err)
	}

	logger := log.DefaultLogger("influx-write")

	httpClientCfg := c.HTTPClient
	httpClientCfg.Log = logger.Child("http", log.Data{})

	httpClient, err := shttp.NewClient(httpClientCfg)
	if err != nil {
		p.Fatal("cannot create http client: %v", err)
	}

	clientCfg := c.Influx
	clientCfg.Log = logger.Child("influx", log.Data{})
	clientCfg.HTTPClient = httpClient.Client
	clientCfg.Hostname = hostname

	client, err := influx.NewClient(clientCfg)
	if err != nil {
		p.Fatal("cannot create client: %v", err)
	}

	if _, ok := point.LineProtocol(client.PointSettings()); !ok {
		p.Fatal("%v", point)
	}

	if err := client.WritePoint(point); err != nil {
		p.Fatal("cannot write point: %v", err)
	}

	p.Info("point written to bucket %q", clientCfg.Bucket)
}

type pointOptions struct {
	Tags         string
	IntFields    string
	FloatFields  string
	StringFields string
	BoolFields   string
}

func optionValues(p *program.Program) pointOptions {
	return pointOptions{
		Tags:         p.OptionValue("tags"),
		IntFields:    p.OptionValue("int-fields"),
		FloatFields:  p.OptionValue("float-fields"),
		StringFields: p.OptionValue("string-fields"),
		BoolFields:   p.OptionValue("bool-fields"),
	}
}

func buildPoint(measurement string, opts pointOptions) (*influx.Point, error) {
	point := influx.NewPoint(measurement)

	type pairSet struct {
		s  string
		fn func(name, value string) error
	}

	sets := []pairSet{
		{opts.Tags, func(name, value string) error {
			point.Tag(name, value)
			return nil
		}},
		{opts.IntFields, func(name, value string) error {
			_, err := point.ParseIntField(name, value)
			return err
		}},
		{opts.FloatFields, func(name, value string) error {
			_, err := point.ParseFloatField(name, value)
			return err
		}},
		{opts.StringFields, func(name, value string) error {
			point.StringField(name, value)
			return nil
		}},
		{opts.BoolFields, func(name, value string) error {
			point.BooleanField(name, parseBool(value))
			return nil
		}},
	}

	for _, set := range sets {
		pairs, err := parsePairs(set.s)
		if err != nil {
			return nil, err
		}

		for _, pair := range pairs {
			if err := set.fn(pair[0], pair[1]); err != nil {
				return nil, err
			}
		}
	}

	return point, nil
}

func parsePairs(s string) ([][2]string, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	pairs := make([][2]string, len(parts))

	for i, part := range parts {
		name, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("invalid name/value pair %q", part)
		}

		pairs[i] = [2]string{name, value}
	}

	return pairs, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "f", "false", "no", "off":
		return false
	default:
		return true
	}
}
