// Package marker recognises the schema tags a Liquid section template can
// carry. Three surface forms are understood:
//
//	{% schema %}...{% endschema %}            static block, already inlined
//	{% schema './schema' %}[...{% endschema %}] reference marker, self-replacing
//	{% # import schema from './schema' %}     reference comment, annotation only
//
// Every form accepts the Liquid whitespace-control dash next to either tag
// delimiter and arbitrary whitespace (newlines included) between the
// delimiters and the keyword. The rest of the template is opaque: the package
// never looks at any other Liquid syntax.
package marker
