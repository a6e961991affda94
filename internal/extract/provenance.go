package extract

// SkillPack identifies the skill bundle that produced an event.
type SkillPack struct {
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Provenance describes which model, provider, and skill pack produced an
// event. Assembled from top-level metadata keys plus the nested
// orgx_provenance object.
type Provenance struct {
	PluginVersion        string    `json:"plugin_version,omitempty"`
	SkillPack            SkillPack `json:"skill_pack,omitempty"`
	KickoffContextHash   string    `json:"kickoff_context_hash,omitempty"`
	KickoffContextSource string    `json:"kickoff_context_source,omitempty"`
	ModelTier            string    `json:"model_tier,omitempty"`
	Provider             string    `json:"provider,omitempty"`
	Model                string    `json:"model,omitempty"`
	Domain               string    `json:"domain,omitempty"`
	RequiredSkills       []string  `json:"required_skills,omitempty"`
}

// ProvenanceFromBag assembles provenance from the metadata bag. It returns
// nil unless at least one field is present.
func ProvenanceFromBag(meta Bag) *Provenance {
	if meta == nil {
		return nil
	}

	nested := meta.Nested("orgx_provenance")
	pick := func(keys ...string) string {
		if s, _, ok := meta.FirstString(keys...); ok {
			return s
		}
		if s, _, ok := nested.FirstString(keys...); ok {
			return s
		}
		return ""
	}

	p := &Provenance{
		PluginVersion:        pick("pluginVersion", "plugin_version"),
		KickoffContextHash:   pick("kickoffContextHash", "kickoff_context_hash"),
		KickoffContextSource: pick("kickoffContextSource", "kickoff_context_source"),
		ModelTier:            pick("modelTier", "model_tier"),
		Provider:             pick("provider"),
		Model:                pick("model"),
		Domain:               pick("domain"),
	}
	if skills, ok := meta.FirstStringList("requiredSkills", "required_skills"); ok {
		p.RequiredSkills = skills
	} else if skills, ok := nested.FirstStringList("requiredSkills", "required_skills"); ok {
		p.RequiredSkills = skills
	}

	pack := meta.Nested("skill_pack")
	if pack == nil {
		pack = nested.Nested("skill_pack")
	}
	if pack != nil {
		p.SkillPack.Name, _, _ = pack.FirstString("name")
		p.SkillPack.Version, _, _ = pack.FirstString("version")
		p.SkillPack.Checksum, _, _ = pack.FirstString("checksum")
		p.SkillPack.Source, _, _ = pack.FirstString("source")
	}

	if isEmptyProvenance(p) {
		return nil
	}
	return p
}

func isEmptyProvenance(p *Provenance) bool {
	return p.PluginVersion == "" &&
		p.KickoffContextHash == "" &&
		p.KickoffContextSource == "" &&
		p.ModelTier == "" &&
		p.Provider == "" &&
		p.Model == "" &&
		p.Domain == "" &&
		len(p.RequiredSkills) == 0 &&
		p.SkillPack == (SkillPack{})
}
