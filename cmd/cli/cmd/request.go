package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

// requestFlags are the calculation inputs shared by estimate and quote
type requestFlags struct {
	file        string
	plan        string
	subtype     string
	desktop     int
	web         int
	modules     []string
	webModules  []string
	pos         []int
	extras      []string
	extraFloors []string
	region      string
	format      string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.file, "request", "", "read the request from a YAML or JSON file; flags override its values")
	fl.StringVarP(&f.plan, "plan", "p", "", "legacy plan (Corporate, Advanced, Enterprise)")
	fl.StringVar(&f.subtype, "subtype", "", `management sub-type of a Corporate plan, e.g. "Gestão Completo"`)
	fl.IntVar(&f.desktop, "desktop", 0, "desktop users")
	fl.IntVar(&f.web, "web", 0, "web users")
	fl.StringArrayVarP(&f.modules, "module", "m", nil, "module selection NAME=QTY (repeatable; QTY defaults to 1)")
	fl.StringArrayVar(&f.webModules, "web-module", nil, "web users of a module NAME=QTY (repeatable)")
	fl.IntSliceVar(&f.pos, "pos", nil, "POS terminals per license group, e.g. 1,3")
	fl.StringSliceVar(&f.extras, "extra", nil, "legacy features the customer owns, e.g. genai,sms")
	fl.StringArrayVar(&f.extraFloors, "extra-floor", nil, "override a legacy feature floor NAME=TIER (repeatable)")
	fl.StringVarP(&f.region, "region", "r", "", "regional price variant (AO, MZ)")
	fl.StringVarP(&f.format, "format", "f", "", "output format (cli, json, yaml, markdown)")
}

// build reads the request file, if any, then applies the flags that were set
func (f *requestFlags) build(cmd *cobra.Command) (types.Request, error) {
	var req types.Request
	if f.file != "" {
		r, err := readRequestFile(f.file)
		if err != nil {
			return req, err
		}
		req = r
	}

	changed := cmd.Flags().Changed
	if changed("plan") {
		plan, err := parsePlan(f.plan)
		if err != nil {
			return req, err
		}
		req.CurrentPlan = plan
	}
	if changed("subtype") {
		subtype, err := parseSubtype(f.subtype)
		if err != nil {
			return req, err
		}
		req.ManagementSubtype = subtype
	}
	if changed("desktop") {
		req.DesktopSeats = f.desktop
	}
	if changed("web") {
		req.WebSeats = f.web
	}
	if changed("module") {
		selections, err := parseQuantities(f.modules, 1)
		if err != nil {
			return req, err
		}
		req.Selections = merge(req.Selections, selections)
	}
	if changed("web-module") {
		web, err := parseQuantities(f.webModules, 0)
		if err != nil {
			return req, err
		}
		req.WebSelections = merge(req.WebSelections, web)
	}
	if changed("pos") {
		req.POSCounts = f.pos
	}
	if changed("extra") {
		req.LegacyExtras = f.extras
	}
	if changed("extra-floor") {
		floors, err := parseQuantities(f.extraFloors, 0)
		if err != nil {
			return req, err
		}
		if req.LegacyExtraFloors == nil {
			req.LegacyExtraFloors = make(map[string]types.TierID, len(floors))
		}
		for name, tier := range floors {
			req.LegacyExtraFloors[name] = types.TierID(tier)
		}
	}
	if changed("region") {
		req.Region = f.region
	}
	return req, nil
}

// readRequestFile decodes a request; YAML is a superset of JSON so one decoder serves both
func readRequestFile(path string) (types.Request, error) {
	var req types.Request
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return req, errors.NotFound("request file", path)
		}
		return req, errors.Wrap(errors.TypeInput, "failed to open request file", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		return req, errors.Parsing(path+": invalid request", err)
	}
	return req, nil
}

// parseQuantities parses NAME=QTY pairs; a bare NAME takes def
func parseQuantities(pairs []string, def int) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, qty, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Newf(errors.TypeInput, "invalid selection %q: empty name", pair)
		}
		n := def
		if found {
			v, err := strconv.Atoi(strings.TrimSpace(qty))
			if err != nil {
				return nil, errors.Newf(errors.TypeInput, "invalid selection %q: quantity must be a whole number", pair)
			}
			n = v
		}
		out[name] += n
	}
	return out, nil
}

func merge(dst, src map[string]int) map[string]int {
	if dst == nil {
		dst = make(map[string]int, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// parsePlan matches a legacy plan ignoring case and accents
func parsePlan(s string) (types.LegacyPlan, error) {
	for _, p := range []types.LegacyPlan{types.PlanCorporate, types.PlanAdvanced, types.PlanEnterprise} {
		if catalog.Normalize(s) == catalog.Normalize(string(p)) {
			return p, nil
		}
	}
	return "", errors.Newf(errors.TypeInput, "unknown plan %q (expected Corporate, Advanced or Enterprise)", s)
}

// parseSubtype matches a management sub-type; the "Gestão" prefix is optional
func parseSubtype(s string) (types.ManagementSubtype, error) {
	key := catalog.Normalize(s)
	if key == "" {
		return "", nil
	}
	for _, st := range []types.ManagementSubtype{types.SubtypeClientes, types.SubtypeTerceiros, types.SubtypeCompleto} {
		full := catalog.Normalize(string(st))
		if key == full || "gestao "+key == full {
			return st, nil
		}
	}
	return "", errors.Newf(errors.TypeInput, "unknown management sub-type %q", s)
}

func describeRequest(req types.Request) string {
	return fmt.Sprintf("%s %s desktop=%d web=%d modules=%d", req.CurrentPlan, req.ManagementSubtype,
		req.DesktopSeats, req.WebSeats, len(req.Selections))
}
