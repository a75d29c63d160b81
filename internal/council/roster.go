package council

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tkaria/council/internal/llm"
)

// Roster is the closed set of council members for a session. Members is
// ordered by position in agents.yaml; that order fixes the pipeline's
// deterministic call order. Exactly one entry carries the arbitrator flag.
type Roster struct {
	Members    []*Agent
	Arbitrator *Arbitrator

	index map[AgentID]*Agent
}

type rosterFile struct {
	Agents []Profile `yaml:"agents"`
}

// LoadRoster reads the agent roster from a YAML file and binds every
// profile to the given text-generation client.
func LoadRoster(path string, client llm.Client) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("council: read roster %s: %w", path, err)
	}

	var parsed rosterFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("council: parse roster %s: %w", path, err)
	}

	return NewRoster(parsed.Agents, client)
}

// NewRoster validates the profiles and constructs the agents. Profile
// order is preserved for non-arbitrator members.
func NewRoster(profiles []Profile, client llm.Client) (*Roster, error) {
	roster := &Roster{index: make(map[AgentID]*Agent, len(profiles))}

	for i, profile := range profiles {
		profile.ID = normalizeID(string(profile.ID))
		if err := validateProfile(profile); err != nil {
			return nil, fmt.Errorf("council: agents[%d]: %w", i, err)
		}
		if _, dup := roster.index[profile.ID]; dup {
			return nil, fmt.Errorf("council: duplicate agent id %q", profile.ID)
		}

		if profile.Arbitrator {
			if roster.Arbitrator != nil {
				return nil, fmt.Errorf("council: more than one arbitrator configured")
			}
			arb := NewArbitrator(profile, client)
			roster.Arbitrator = arb
			roster.index[profile.ID] = &arb.Agent
			continue
		}

		agent := NewAgent(profile, client)
		roster.Members = append(roster.Members, agent)
		roster.index[profile.ID] = agent
	}

	if roster.Arbitrator == nil {
		return nil, fmt.Errorf("council: roster has no arbitrator")
	}
	if len(roster.Members) == 0 {
		return nil, fmt.Errorf("council: roster has no debating agents")
	}

	return roster, nil
}

// Member returns the non-arbitrator agent with the given ID.
func (r *Roster) Member(id AgentID) (*Agent, bool) {
	agent, ok := r.index[id]
	if !ok || (r.Arbitrator != nil && id == r.Arbitrator.ID()) {
		return nil, false
	}
	return agent, true
}

// IDs returns the non-arbitrator agent IDs in load order.
func (r *Roster) IDs() []AgentID {
	ids := make([]AgentID, 0, len(r.Members))
	for _, agent := range r.Members {
		ids = append(ids, agent.ID())
	}
	return ids
}

// Weights snapshots every non-arbitrator agent's current voting weight.
func (r *Roster) Weights() map[AgentID]float64 {
	weights := make(map[AgentID]float64, len(r.Members))
	for _, agent := range r.Members {
		weights[agent.ID()] = agent.Weight()
	}
	return weights
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required for %q", p.ID)
	}
	if strings.TrimSpace(p.Role) == "" {
		return fmt.Errorf("role is required for %q", p.ID)
	}
	if strings.TrimSpace(p.Personality) == "" {
		return fmt.Errorf("personality is required for %q", p.ID)
	}
	if len(p.Goals) == 0 {
		return fmt.Errorf("at least one goal is required for %q", p.ID)
	}
	if p.ID.IsSentinel() {
		return fmt.Errorf("id %q is reserved", p.ID)
	}
	if p.VotingWeight < 0 {
		return fmt.Errorf("voting_weight for %q must not be negative", p.ID)
	}
	return nil
}
