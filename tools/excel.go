package tools

import (
	"fmt"
	"reflect"
	"time"

	"github.com/xuri/excelize/v2"
)

const excelTimeLayout = "2006-01-02 15:04:05"

type column struct {
	index  []int
	header string
}

// WriteSheet 把结构体切片写入 sheet，第一行为表头
// 表头取 `excel` 标签，"-" 跳过，嵌入结构体展开；空切片只写表头
func WriteSheet(f *excelize.File, sheet string, rows any) error {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("rows %T 不是切片", rows)
	}
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("rows %T 不是结构体切片", rows)
	}

	if sheet == "" {
		sheet = "Sheet1"
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	columns := collectColumns(elemType, nil)
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.header
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	line := 2
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		values := make([]any, len(columns))
		for j, col := range columns {
			values[j] = cellValue(elem.FieldByIndex(col.index))
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		line++
	}
	return nil
}

func collectColumns(t reflect.Type, parent []int) []column {
	var columns []column
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("excel")
		embedded := sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == ""
		// 未导出的内嵌结构体仍然展开其导出字段
		if !sf.IsExported() && !embedded {
			continue
		}
		idx := append(append([]int(nil), parent...), i)
		if embedded {
			columns = append(columns, collectColumns(sf.Type, idx)...)
			continue
		}
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		columns = append(columns, column{index: idx, header: tag})
	}
	return columns
}

func cellValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	switch x := fv.Interface().(type) {
	case time.Time:
		return x.Format(excelTimeLayout)
	case bool:
		if x {
			return "是"
		}
		return "否"
	default:
		return x
	}
}
