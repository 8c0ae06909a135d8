package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tumbletris/ecs"
)

// Inspector lists the components of a changing set of entities. Numeric and
// boolean fields are editable in place.
type Inspector struct {
	Title   string
	Targets func() []ecs.EntityId
}

type fieldInfo struct {
	Name  string
	Index int
}

var fieldCache = map[reflect.Type][]fieldInfo{}

// exportedFields returns the exported fields of a struct type in declaration
// order.
func exportedFields(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache[t]; ok {
		return cached
	}

	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() {
			fields = append(fields, fieldInfo{Name: f.Name, Index: i})
		}
	}
	fieldCache[t] = fields
	return fields
}

// formatValue renders a read-only leaf value.
func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Invalid:
		return "<invalid>"
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.3f", v.Float())
	case reflect.Slice:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", v.Len())
	case reflect.Func:
		if v.IsNil() {
			return "nil"
		}
		return "func"
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return formatValue(v.Elem())
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (in *Inspector) Render(storage *ecs.Storage) {
	title := in.Title
	if title == "" {
		title = "Inspector"
	}
	if !imgui.BeginV(title, nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	var targets []ecs.EntityId
	if in.Targets != nil {
		targets = in.Targets()
	}
	if len(targets) == 0 {
		imgui.Text("No entities")
		imgui.End()
		return
	}

	for _, id := range targets {
		label := fmt.Sprintf("Entity %d (gen %d)", id.Index(), id.Generation())
		if !storage.Alive(id) {
			imgui.Text(label + ": gone")
			continue
		}
		if !imgui.TreeNodeStr(label) {
			continue
		}
		for _, compType := range storage.ComponentTypes(id) {
			component := storage.GetComponent(id, compType)
			if component == nil {
				continue
			}
			if imgui.TreeNodeStr(compType.String()) {
				renderValue(reflect.ValueOf(component).Elem(), fmt.Sprintf("%d.%s", id, compType))
				imgui.TreePop()
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

// renderValue draws every field of a struct value; scope keeps widget ids
// unique across entities.
func renderValue(val reflect.Value, scope string) {
	if val.Kind() != reflect.Struct {
		imgui.Text(formatValue(val))
		return
	}

	for _, field := range exportedFields(val.Type()) {
		renderField(field.Name, val.Field(field.Index), scope+"."+field.Name)
	}
}

func renderField(name string, val reflect.Value, id string) {
	switch val.Kind() {
	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat("##"+id, &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt("##"+id, &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name+"##"+id, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name + "##" + id) {
			renderValue(val, id)
			imgui.TreePop()
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", name, formatValue(val)))
	}
}
