package schema

import (
	"reflect"
	"testing"
)

func TestParseParquetTag(t *testing.T) {
	type args struct {
		tag string
	}
	tests := []struct {
		name    string
		args    args
		want    *ParquetTag
		wantErr bool
	}{
		{
			name: "success",
			args: args{
				tag: "name=song_id, type=BYTE_ARRAY, convertedtype=UTF8",
			},
			want: &ParquetTag{
				Name:          "song_id",
				Type:          "BYTE_ARRAY",
				ConvertedType: "UTF8",
			},
		},
		{
			name: "lower case values",
			args: args{
				tag: "name=artist_latitude,type=double,repetitiontype=optional",
			},
			want: &ParquetTag{
				Name:           "artist_latitude",
				Type:           "DOUBLE",
				RepetitionType: "OPTIONAL",
			},
		},
		{
			name: "skip",
			args: args{
				tag: "-",
			},
			want: &ParquetTag{Skip: true},
		},
		{
			name: "missing type",
			args: args{
				tag: "name=foo",
			},
			want: &ParquetTag{
				Name: "foo",
			},
		},
		{
			name: "Extra comma",
			args: args{
				tag: "name=foo,type=INT32,",
			},
			wantErr: true,
		},
		{
			name: "additional unrecognized kv pair",
			args: args{
				tag: "name=foo,type=INT32,another=tag",
			},
			wantErr: true,
		},
		{
			name: "invalid type",
			args: args{
				tag: "name=foo,type=varchar",
			},
			wantErr: true,
		},
		{
			name: "invalid converted type",
			args: args{
				tag: "name=foo,type=INT64,convertedtype=TIMESTAMP_NANOS",
			},
			wantErr: true,
		},
		{
			name: "invalid repetition type",
			args: args{
				tag: "name=foo,type=INT64,repetitiontype=MAYBE",
			},
			wantErr: true,
		},
		{
			name: "invalid name",
			args: args{
				tag: "name=1foo,type=INT64",
			},
			wantErr: true,
		},
		{
			name: "reserved name",
			args: args{
				tag: "name=select,type=INT64",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParquetTag(tt.args.tag)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseParquetTag() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseParquetTag() got = %v, want %v", got, tt.want)
			}
		})
	}
}
