// Package neo4j extracts a cypher-guard schema from a live Neo4j database.
//
// Introspection reads topology only (labels, relationship types, property
// names and types, and which label pairs each relationship type connects);
// validation itself never touches the database.
package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/neo4j-field/cypher-guard/schema"
)

// Config is the connection configuration.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Introspector extracts schemas from one Neo4j instance.
type Introspector struct {
	driver neo4j.DriverWithContext
	db     string
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg *Config) (*Introspector, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: failed to connect: %w", err)
	}

	return &Introspector{driver: driver, db: cfg.Database}, nil
}

// Close releases the driver.
func (i *Introspector) Close(ctx context.Context) error {
	if i.driver != nil {
		if err := i.driver.Close(ctx); err != nil {
			return fmt.Errorf("neo4j: failed to close driver: %w", err)
		}
	}
	return nil
}

const (
	nodePropsQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	relPropsQuery = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	topologyQuery = `MATCH (a)-[r]->(b)
WITH DISTINCT labels(a) AS startLabels, type(r) AS relType, labels(b) AS endLabels
RETURN startLabels, relType, endLabels`
)

// IntrospectSchema builds a schema from the database's own view of its
// labels, relationship types, and property types, plus the observed
// relationship topology.
func (i *Introspector) IntrospectSchema(ctx context.Context) (*schema.Schema, error) {
	session := i.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: i.db,
	})
	defer func() { _ = session.Close(ctx) }()

	nodeRows, err := collect(ctx, session, nodePropsQuery)
	if err != nil {
		return nil, err
	}
	relRows, err := collect(ctx, session, relPropsQuery)
	if err != nil {
		return nil, err
	}
	topoRows, err := collect(ctx, session, topologyQuery)
	if err != nil {
		return nil, err
	}

	return buildSchema(nodeRows, relRows, topoRows)
}

func collect(ctx context.Context, session neo4j.SessionWithContext, query string) ([]*neo4j.Record, error) {
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("neo4j: introspection query failed: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to collect results: %w", err)
	}
	return records, nil
}

// buildSchema converts raw introspection records into a schema.
func buildSchema(nodeRows, relRows, topoRows []*neo4j.Record) (*schema.Schema, error) {
	s := &schema.Schema{
		NodeProps: map[string][]schema.Property{},
		RelProps:  map[string][]schema.Property{},
	}

	for _, rec := range nodeRows {
		labels := stringList(value(rec, "nodeLabels"))
		propName, _ := value(rec, "propertyName").(string)
		for _, label := range labels {
			if _, ok := s.NodeProps[label]; !ok {
				s.NodeProps[label] = []schema.Property{}
			}
			if propName == "" {
				continue
			}
			s.NodeProps[label] = appendProperty(s.NodeProps[label], schema.Property{
				Name: propName,
				Type: mapPropertyType(stringList(value(rec, "propertyTypes"))),
			})
		}
	}

	for _, rec := range relRows {
		relType := trimRelType(value(rec, "relType"))
		if relType == "" {
			continue
		}
		if _, ok := s.RelProps[relType]; !ok {
			s.RelProps[relType] = []schema.Property{}
		}
		propName, _ := value(rec, "propertyName").(string)
		if propName == "" {
			continue
		}
		s.RelProps[relType] = appendProperty(s.RelProps[relType], schema.Property{
			Name: propName,
			Type: mapPropertyType(stringList(value(rec, "propertyTypes"))),
		})
	}

	for _, rec := range topoRows {
		relType, _ := value(rec, "relType").(string)
		starts := stringList(value(rec, "startLabels"))
		ends := stringList(value(rec, "endLabels"))
		for _, start := range starts {
			for _, end := range ends {
				if relType == "" || start == "" || end == "" {
					continue
				}
				// Topology can surface labels or types the property scan
				// missed (empty nodes); declare them with no properties.
				if _, ok := s.NodeProps[start]; !ok {
					s.NodeProps[start] = []schema.Property{}
				}
				if _, ok := s.NodeProps[end]; !ok {
					s.NodeProps[end] = []schema.Property{}
				}
				if _, ok := s.RelProps[relType]; !ok {
					s.RelProps[relType] = []schema.Property{}
				}
				if !s.HasRelationship(start, relType, end) {
					s.Relationships = append(s.Relationships, schema.Relationship{
						Start:   start,
						RelType: relType,
						End:     end,
					})
				}
			}
		}
	}

	return s, nil
}

func value(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func appendProperty(props []schema.Property, p schema.Property) []schema.Property {
	for _, existing := range props {
		if existing.Name == p.Name {
			return props
		}
	}
	return append(props, p)
}

// trimRelType strips the ":`TYPE`" decoration db.schema.relTypeProperties
// puts around type names.
func trimRelType(v any) string {
	s, _ := v.(string)
	s = strings.TrimPrefix(s, ":")
	return strings.Trim(s, "`")
}

// mapPropertyType converts the driver's property type names to schema tags.
// Multi-typed properties fall back to STRING, the loosest scalar.
func mapPropertyType(types []string) schema.PropertyType {
	if len(types) != 1 {
		return schema.TypeString
	}
	t := types[0]
	if strings.HasSuffix(t, "Array") {
		return schema.TypeList
	}
	switch t {
	case "String":
		return schema.TypeString
	case "Long", "Integer":
		return schema.TypeInteger
	case "Double", "Float":
		return schema.TypeFloat
	case "Boolean":
		return schema.TypeBoolean
	case "Point":
		return schema.TypePoint
	case "Date":
		return schema.TypeDate
	case "DateTime", "ZonedDateTime", "LocalDateTime":
		return schema.TypeDateTime
	default:
		return schema.TypeString
	}
}
